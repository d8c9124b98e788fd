// Package config loads runtime configuration for the gophdraft CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. A .env file in the working directory, then GOPHDRAFT_* environment
//     variables.
//  4. Command-line flags: -a, -t, -d, -j, -l.
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "transport": "grpc",
//	  "autosave_delay": "3s",
//	  "request_timeout": "10s",
//	  "max_image_size": 5242880,
//	  "journal_path": "drafts.db",
//	  "image_store": "s3",
//	  "s3_bucket": "covers",
//	  "s3_endpoint": "https://<account>.r2.cloudflarestorage.com",
//	  "s3_public_base_url": "https://cdn.example.com",
//	  "log_level": "debug",
//	  "log_file": "gophdraft.log"
//	}
//
// S3 credentials are only read from GOPHDRAFT_S3_ACCESS_KEY and
// GOPHDRAFT_S3_SECRET_KEY, never from the JSON file.
package config
