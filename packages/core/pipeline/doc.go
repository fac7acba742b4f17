// Package pipeline sequences one screenshot run: resolve the integration and
// fixture, provision the bot and its channel, replay the fixture, locate the
// resulting message and capture it.
//
// A rejected replay or a missing message ends the run early without an
// image. Those outcomes are reported in the Result, not returned as errors.
package pipeline
