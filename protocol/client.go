package protocol

//input structs coming in from the client.

type Hello struct {
	V    int    `json:"v"`              // version
	Name string `json:"name,omitempty"` // optional name
	Room string `json:"room,omitempty"` // room code; falls back to the ?room= query
}

type Input struct {
	MoveX       float64 `json:"moveX"` // -1..1
	MoveY       float64 `json:"moveY"` // -1..1
	AimX        float64 `json:"aimX"`
	AimY        float64 `json:"aimY"`
	Shooting    bool    `json:"shooting,omitempty"`
	Reload      bool    `json:"reload,omitempty"`
	Interact    bool    `json:"interact,omitempty"`
	Dash        bool    `json:"dash,omitempty"`
	Thermobaric bool    `json:"thermobaric,omitempty"`
	WeaponSlot  *int    `json:"weaponSlot,omitempty"`
	Sequence    uint32  `json:"sequence"` // echoed back for reconciliation
}
