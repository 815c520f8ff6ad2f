// SPDX-License-Identifier: MPL-2.0

// Package config loads and normalizes generation requests.
//
// Configuration is written in CUE (apigen.config.cue in the working directory,
// or config.cue in the platform config directory), validated against the
// embedded config_schema.cue and layered into Viper over defaults and
// APIGEN_* environment variables. Several fields accept more than one shape;
// Normalize resolves them into the concrete Config used by the generator.
package config
