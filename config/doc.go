// Package config loads the healthd configuration and builds the runtime
// components it describes.
//
// A configuration is a YAML document. Before it is decoded, optional .env
// files are loaded into the environment, and every scalar value is expanded
// (${VAR}, ${VAR:-default}) and has its secretref: references resolved
// through the secret package. Build turns a validated Config into a probe
// registry, executor, HTTP handler settings and publisher.
package config
