// Package services holds the domain operations that span a parcel and its
// audit event, or many parcels at once.
//
//   - ParcelOperator runs one state machine transition and builds the
//     matching warehouse event.
//   - BatchPlanner runs the same transition over a set of parcels and either
//     accepts all of them or rejects the whole set.
//
// Neither touches storage; application handlers persist what they return in
// one unit of work.
package services
