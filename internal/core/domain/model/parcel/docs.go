// Package parcel defines the Parcel aggregate and the state machine that is
// the only way to change its status.
//
// The machine is a pure table of (status, event) pairs. Transition never
// performs I/O; it returns a Decision holding the next status and the field
// patch, and the caller persists that patch together with exactly one
// warehouse event in a single unit of work.
//
// Lifecycle:
//
//	created ─ScanIn─> inbound_received ─BeginSort─> sorting ─Sort─> sorted
//	inbound_received ─Sort─> sorted ─AddToManifest─> manifested
//	manifested ─DispatchDelivery─> out_for_delivery ─Deliver─> delivered
//	manifested ─DispatchTransfer─> transfer_dispatched ─ArriveTransfer─> transfer_arrived
//	out_for_delivery ─RequestReturn─> return_requested ─ReceiveReturn─> return_received
//
// ScanIn and Cancel are accepted from any non-terminal status, ReceiveReturn
// from anything but cancelled. delivered and cancelled are terminal.
package parcel
