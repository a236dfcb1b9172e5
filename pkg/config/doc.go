// Package config loads and validates the monsync run configuration.
//
// The configuration is a JSON document read once per invocation:
//
//	{
//	  "category": "network,db",
//	  "zabbix": {"url": "...", "user": "...", "password": "..."},
//	  "grafana": {"url": "...", "api_key": "..."},
//	  "git_repos": {
//	    "zabbix_templates": "...",
//	    "zabbix_scripts": "...",
//	    "grafana_dashboards": "..."
//	  },
//	  "externalscript_path": "/usr/lib/zabbix/externalscripts",
//	  "venv_required": true
//	}
//
// The datasource password may use Grafana's $__env{VAR} indirection so the
// secret resolves at service startup rather than being persisted verbatim in
// the provisioning file.
package config
