// Package governanceservice implements editorial governance for community
// dictionary terms and folklore entries inside the editorial-governance
// context.
//
// The module owns the revision review workflow: drafts, multi-reviewer
// quorum, flag-driven re-review rounds, publication with variant-group
// mother election, contribution credit and time-based archival. Business
// rules live in the application and domain layers; storage, identity, media
// and event delivery sit behind ports.
package governanceservice
