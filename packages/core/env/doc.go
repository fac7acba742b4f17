// Package env reads hookshot settings from the process environment and from
// .env files.
//
// Every command line flag has a HOOKSHOT_* counterpart. A .env file passed
// with --env-file is exported before flags are resolved, so its values act as
// defaults that the real environment can still override.
package env
