// Package visits schedules operator-entered one-off visits.
//
// A visit is an ordered list of timed mode changes, each tagged checkin,
// checkout or arriving_soon. The tags resolve to configured house mode
// names when an entry fires; a firing checkin entry additionally programs
// the visit's lock code and a checkout entry removes it. After the final
// entry fires, the visit deletes itself from the persisted store.
//
// Unlike the reservation engine there is no feed to diff against: the
// persisted list is the state, and the in-memory timer handles are a derived
// projection rebuilt from it on process start.
//
// # HTTP Endpoints
//
//   - GET /visits : persisted visits.
//   - POST /visits : add and schedule a visit.
//   - DELETE /visits/:id : remove a visit and cancel its timers.
//   - GET /timezone : the configured property timezone.
package visits
