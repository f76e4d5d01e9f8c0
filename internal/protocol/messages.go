package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string     `json:"type" jsonschema:"enum=HELLO"`
	ProtocolVersion string     `json:"protocol_version"`
	PlayerName      string     `json:"player_name,omitempty"`
	Auth            *HelloAuth `json:"auth,omitempty"`
	MaxQueue        int        `json:"max_queue,omitempty"`
}

// HelloAuth resumes an existing player (e.g. one restored from a snapshot).
type HelloAuth struct {
	PlayerID string `json:"player_id,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	PlayerID        string         `json:"player_id"`
	WorldParams     WorldParams    `json:"world_params"`
	Catalogs        CatalogDigests `json:"catalogs"`
	Ages            []string       `json:"ages"`
	State           PlayerState    `json:"state"`
}

type WorldParams struct {
	TickRateHz     int `json:"tick_rate_hz"`
	WorldSize      int `json:"world_size"`
	TileSize       int `json:"tile_size"`
	VisionRadius   int `json:"vision_radius"`
	SyncIntervalMs int `json:"sync_interval_ms"`
}

type CatalogDigests struct {
	ResourcesDigest   string `json:"resources_digest"`
	ItemsDigest       string `json:"items_digest"`
	RecipesDigest     string `json:"recipes_digest"`
	ConsumablesDigest string `json:"consumables_digest"`
	ToolsDigest       string `json:"tools_digest"`
	AgesDigest        string `json:"ages_digest"`
}

// CATALOG (server -> client)
type CatalogMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Name            string `json:"name"`
	Digest          string `json:"digest"`
	Data            any    `json:"data"`
}

// CRAFT (client -> server)
type CraftMsg struct {
	Type            string `json:"type" jsonschema:"enum=CRAFT"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id,omitempty"`
	RecipeID        string `json:"recipe_id"`
}

// CONSUME (client -> server)
type ConsumeMsg struct {
	Type            string `json:"type" jsonschema:"enum=CONSUME"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id,omitempty"`
	ConsumableID    string `json:"consumable_id"`
}

// GATHER (client -> server) harvests one resource node.
type GatherMsg struct {
	Type            string `json:"type" jsonschema:"enum=GATHER"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id,omitempty"`
	NodeID          string `json:"node_id"`
}

// STATE (client -> server) asks for the current committed player state.
type StateMsg struct {
	Type            string `json:"type" jsonschema:"enum=STATE"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id,omitempty"`
}

// RESULT (server -> client)
type ResultMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	ReqID           string         `json:"req_id,omitempty"`
	Kind            string         `json:"kind"`
	Ref             string         `json:"ref,omitempty"`
	Consumed        map[string]int `json:"consumed,omitempty"`
	Produced        map[string]int `json:"produced,omitempty"`
	Delta           *VitalsDelta   `json:"delta,omitempty"`
	State           PlayerState    `json:"state"`
	Events          []Event        `json:"events,omitempty"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	ReqID           string         `json:"req_id,omitempty"`
	Code            string         `json:"code"`
	Message         string         `json:"message"`
	Shortfall       map[string]int `json:"shortfall,omitempty"`
	RequiredAge     *int           `json:"required_age,omitempty"`
}

type VitalsDelta struct {
	Health  float64 `json:"health"`
	Hunger  float64 `json:"hunger"`
	Stamina float64 `json:"stamina"`
}

type PlayerState struct {
	PlayerID  string         `json:"player_id"`
	Age       int            `json:"age"`
	AgeName   string         `json:"age_name"`
	Inventory map[string]int `json:"inventory"`
	Health    float64        `json:"health"`
	Hunger    float64        `json:"hunger"`
	Stamina   float64        `json:"stamina"`
}
