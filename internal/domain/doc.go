// Package domain contains the core business entities and domain logic of
// the conversion service: the job record, its status lifecycle, and the
// invariants every transition must preserve. It is independent of any
// specific infrastructure or delivery mechanism.
package domain
