// Package provision runs the post-import stage of a deployment: installing
// Grafana plugins from a manifest and ensuring exactly one monitoring
// datasource exists.
//
// Two datasource strategies are supported. The canonical one writes a
// declarative provisioning file and restarts the service (idempotent by
// overwrite); when no provisioning path is configured, the provisioner falls
// back to querying the API and creating the datasource only if absent.
// After any restart the service is polled for readiness with a bounded
// timeout rather than a fixed delay.
package provision
