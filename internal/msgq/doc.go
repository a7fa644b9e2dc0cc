// Package msgq provides the at-least-once message channel that chains
// publishing stage work between workers.
//
// Messages are plain JSON payloads on named queues backed by a SQLite table in
// the statspub database. Receivers claim the oldest unclaimed message; Ack
// deletes it and Nack returns it for redelivery, so a crashed worker's message
// is picked up again after the claim expires.
package msgq
