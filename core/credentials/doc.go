// Package credentials resolves a lock's credential reference into an
// authenticated lock-provider client.
//
// Each lock names the secret that operates it (for example SEAM_API_KEY_UNIT_B).
// The resolver reads that secret through an injected lookup, so the process
// environment is only consulted where the resolver is built.
//
//	resolver := credentials.NewEnvResolver(cfg.Seam, os.LookupEnv)
package credentials
