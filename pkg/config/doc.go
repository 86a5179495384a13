// Package config provides YAML-based configuration for the log store.
//
// Configuration loads in four steps: read the file, apply defaults,
// apply LOGVAULT_* environment overrides, validate. The resulting Config
// translates into an engine configuration with EngineConfig.
//
// There is no process-wide configuration singleton: callers
// load a Config and pass it (or the derived engine configuration) to the
// components that need it.
//
// FileWatcher supports live reload: retention settings can change on a
// running store without re-opening it.
package config
