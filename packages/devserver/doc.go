// Package devserver is a minimal stand-in for the messaging server's
// incoming webhook endpoints.
//
// Each integration's webhook path accepts a JSON payload authenticated by the
// integration bot's API key, and posts one message into the named channel of
// the bot's realm. Responses follow the {"result": ..., "msg": ...} shape of
// the real API.
package devserver
