// Package store defines the persistence contracts of the progress engine.
// Implementations must make each mutating call atomic on its own: counters
// are incremented in the database and unlocks are guarded by uniqueness
// constraints, so concurrent submissions for one learner never lose updates.
package store
