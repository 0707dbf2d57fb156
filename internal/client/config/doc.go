// Package config loads runtime configuration for the docadmin console.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c, -config or --config.
//  3. Environment variables prefixed with DOCADMIN_. A .env file in the
//     working directory is loaded first; real environment variables win.
//  4. Command-line flags.
//
// Supported flags
//
//	-a string   base URL of the REST backend
//	-d string   path of the local SQLite database
//	-o string   download directory
//	-s int      page size of list screens
//	-t duration request timeout such as 30s or 500ms (0 disables it)
//	-l string   log level
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:2020",
//	  "database_path": "docadmin.db",
//	  "download_dir": "downloads",
//	  "page_size": 5,
//	  "request_timeout": "30s",
//	  "log_level": "info"
//	}
//
// Environment
//
//	DOCADMIN_SERVER_URL, DOCADMIN_DATABASE_PATH, DOCADMIN_DOWNLOAD_DIR,
//	DOCADMIN_PAGE_SIZE, DOCADMIN_REQUEST_TIMEOUT, DOCADMIN_LOG_LEVEL
package config
