// Package replay delivers a recorded webhook payload to a running
// development server on behalf of an integration bot and finds the message
// the delivery produced.
//
// A replay first deletes every message the bot has sent, so after a
// successful delivery the bot's latest message is the one to capture. Two
// runs for the same integration must not overlap: one run's purge can race
// with the other's delivery. The located message is not checked against the
// delivery that preceded it.
package replay
