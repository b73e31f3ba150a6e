// Package domain contains the learner progress entities, their invariants and
// the error taxonomy shared by every layer. It is independent of any specific
// infrastructure or delivery mechanism.
package domain
