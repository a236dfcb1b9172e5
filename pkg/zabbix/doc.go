// Package zabbix implements the subset of the Zabbix JSON-RPC 2.0 API used
// by the deployment pipeline: user.login for session establishment and
// configuration.import for idempotent template imports (create missing,
// update existing).
package zabbix
