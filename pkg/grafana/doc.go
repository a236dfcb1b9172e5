// Package grafana implements the Grafana surfaces used by the deployment
// pipeline: the REST API (dashboard upload with overwrite, datasource
// list/create, health probing), plugin installation through grafana-cli,
// and service restart through the systemd D-Bus API.
package grafana
