// Package triage is the business boundary between transports and the acuity
// rule engine. The Service assigns evaluation IDs, traces and audit-logs
// each evaluation, feeds metrics hooks and hands resuscitation-level
// outcomes to an optional Notifier. The engine underneath stays pure.
package triage
