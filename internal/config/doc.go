// Package config handles confirmd configuration parsing, defaults and validation.
//
// # Overview
//
// confirmd reads an HCL file (JSON is accepted too, chosen by extension):
//
//	schema_version = "1.0"
//
//	acceptance {
//	  enabled      = true
//	  duration     = 120
//	  backend      = "file"
//	  marker_path  = "/var/lib/confirmd/.acceptance"
//	  early_accept = false
//	}
//
//	logging {
//	  level = "info"
//	  json  = false
//	}
//
//	state {
//	  path    = "/var/lib/confirmd/state.db"
//	  history = true
//	}
//
//	metrics {
//	  listen = "127.0.0.1:9187"
//	}
//
// Every block and attribute is optional; [Config.ApplyDefaults] fills in the
// gaps and [Config.Validate] rejects values the acceptance monitor cannot use.
// The monitor itself never loads configuration, it only receives the resolved
// enabled flag and duration.
package config
