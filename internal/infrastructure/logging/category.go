package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	IO              Category = "IO"
	Internal        Category = "Internal"
	Redis           Category = "Redis"
	RabbitMQ        Category = "RabbitMQ"
	MongoDB         Category = "MongoDB"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
	Prometheus      Category = "Prometheus"
	Session         Category = "Session"
	WebSocket       Category = "WebSocket"
)

const (
	// General
	Startup         SubCategory = "Startup"
	Shutdown        SubCategory = "Shutdown"
	RateLimiting    SubCategory = "RateLimiting"
	ExternalService SubCategory = "ExternalService"

	// Session
	Matchmaking SubCategory = "Matchmaking"
	Rendezvous  SubCategory = "Rendezvous"
	Relay       SubCategory = "Relay"
	Lifecycle   SubCategory = "Lifecycle"

	// WebSocket
	Upgrade SubCategory = "Upgrade"
	Read    SubCategory = "Read"
	Write   SubCategory = "Write"

	// Events
	Publish SubCategory = "Publish"
	Consume SubCategory = "Consume"

	// Persistence
	Connect   SubCategory = "Connect"
	Insert    SubCategory = "Insert"
	Select    SubCategory = "Select"
	Delete    SubCategory = "Delete"
	Migration SubCategory = "Migration"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	ClientIp     ExtraKey = "ClientIp"
	HostIp       ExtraKey = "HostIp"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	BodySize     ExtraKey = "BodySize"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	RequestBody  ExtraKey = "RequestBody"
	ResponseBody ExtraKey = "ResponseBody"
	ErrorMessage ExtraKey = "ErrorMessage"

	ConnID ExtraKey = "ConnID"
	RoomID ExtraKey = "RoomID"
	Role   ExtraKey = "Role"
	Mode   ExtraKey = "Mode"
	Event  ExtraKey = "Event"
	Reason ExtraKey = "Reason"
)
