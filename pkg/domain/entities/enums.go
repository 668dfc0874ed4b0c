package entities

type DeploymentStatus string

const (
	DeploymentStatusDeploying  DeploymentStatus = "Deploying"
	DeploymentStatusDeployed   DeploymentStatus = "Deployed"
	DeploymentStatusFailed     DeploymentStatus = "Failed"
	DeploymentStatusTerminated DeploymentStatus = "Terminated"
	DeploymentStatusUnknown    DeploymentStatus = "Unknown"
)

type ConnectionStatus string

const (
	ConnectionStatusConnected    ConnectionStatus = "Connected"
	ConnectionStatusDisconnected ConnectionStatus = "Disconnected"
	ConnectionStatusError        ConnectionStatus = "Error"
)

type ProjectKind string

const (
	ProjectKindFramework    ProjectKind = "Framework"
	ProjectKindStatic       ProjectKind = "Static"
	ProjectKindUnrecognized ProjectKind = "Unrecognized"
)

// RunState tracks where a single orchestration run currently is.
type RunState string

const (
	RunStateIdle                RunState = "Idle"
	RunStateValidating          RunState = "Validating"
	RunStateExtracting          RunState = "Extracting"
	RunStateClassifying         RunState = "Classifying"
	RunStateProvisioning        RunState = "Provisioning"
	RunStateAwaitingPropagation RunState = "AwaitingPropagation"
	RunStateSucceeded           RunState = "Succeeded"
	RunStateFailed              RunState = "Failed"
)
