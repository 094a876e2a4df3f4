// Package notifications delivers job events via ntfy.
//
// The service publishes to the topic URL configured in [notifications] and
// degrades to a no-op when no topic is set. Each event type can be switched
// off on its own. The queue engine depends only on the Service interface.
package notifications
