package hub

// Device describes a device known to the automation hub.
type Device struct {
	// ID is the hub-assigned device identifier.
	ID string `json:"id"`
	// Label is the user-visible device label.
	Label string `json:"label"`
	// Name is the device type name.
	Name string `json:"name"`
}

// Mode describes a house mode known to the automation hub.
type Mode struct {
	// ID is the hub-assigned mode identifier.
	ID string `json:"id"`
	// Name is the mode name, e.g. "Home" or "Away".
	Name string `json:"name"`
	// Active indicates whether this mode is currently in effect.
	Active bool `json:"active"`
}

// LockCode is one entry of a lock's code table.
type LockCode struct {
	// Name is the label stored with the code (we store the reservation tag here).
	Name string `json:"name"`
	// Code is the digit string programmed on the lock.
	Code string `json:"code"`
}

// attribute is one element of a device's getCodes attribute list.
type attribute struct {
	Name         string `json:"name"`
	CurrentValue string `json:"currentValue"`
}
