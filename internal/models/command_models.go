package models

// Command is an immutable catalog entry describing one robot instruction.
// Commands are created and edited by an external administrative process;
// this service only reads them.
type Command struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Directive   string  `json:"directive"` // opaque execution string sent to the robot
	Status      string  `json:"status"`
	ImageURL    *string `json:"image_url"`
}

// CommandFilter narrows a catalog listing. Both patterns are optional,
// case-insensitive substring matches, AND-combined.
type CommandFilter struct {
	Name      string
	Directive string
}
