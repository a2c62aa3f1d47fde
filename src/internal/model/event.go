package model

// Event is anything a kafka producer can publish; GetId is used as the
// message key so events for one aggregate land on one partition.
type Event interface {
	GetId() string
}
