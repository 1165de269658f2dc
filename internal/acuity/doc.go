// Package acuity is the triage rule engine. It maps a patient presentation
// (complaint text, age, vital signs, complaint tags) to one of five ordered
// acuity levels by scanning a fixed, severity-ordered rule table and
// returning the first group that matches.
//
// The engine is a pure function of its input. An Engine is immutable after
// construction and safe for any number of concurrent callers.
package acuity
