// Package secret resolves credentials referenced from configuration.
//
// Two forms are understood in a configuration value:
//   - ${VAR} and ${VAR:-default} expand from the environment (see ExpandEnvStrict)
//   - secretref:<provider>:<ref> is looked up through a Provider (see Resolver)
//
// References may make up the whole value or appear inline:
//
//	dsn: postgres://app:secretref:file:pg_password@db:5432/app
//
// The built-in providers are "env" and "file" (mounted secret files, as in
// Docker or Kubernetes).
package secret
