// Package events builds and publishes versioned subscription lifecycle
// events.
//
// Two wire shapes are supported: the current hierarchical schema (nested
// subscription object graph) and the legacy flattened schema (flat string
// map). The shape is a deployment-wide setting fixed when the Composer is
// constructed; the (schema version x operation type) selection lives in one
// explicit constructor table rather than scattered switch statements.
//
// Composition is deterministic given the same inputs except for the
// generated event ID and the default timestamp. Publication is a separate
// concern behind the Publisher interface, with a signed-webhook
// implementation and a development log sink.
package events
