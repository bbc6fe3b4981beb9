// Package eta turns raw arrival records and route metadata into display facts.
//
// Everything here is pure: callers pass the current instant, the display options
// and the phrase catalogue explicitly, and every call re-derives its result from
// scratch. The package never fetches, caches or logs.
//
// The pieces, leaves first:
//   - ClassifyWait: remaining wait to a category plus pre-formatted text
//   - IsBranch: whether a destination differs from the route's usual terminals
//   - NormalizeRemark: platform and deck-marker rewriting of operator remarks
//   - ResolveNoSchedule: the single explanation shown when no line can be rendered
//   - ComposeLine / BuildTimeReport: one stop's report
package eta
