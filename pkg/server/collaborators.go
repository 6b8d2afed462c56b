package server

// OutputStore is the external collaborator managing named delivery
// outputs (spec §1: "packet filtering and UDP delivery" is out of scope;
// only this interface to it is specified).
type OutputStore interface {
	Add(name, mrl string) error
	Remove(name string) error
	SetService(output, service string) error
	AddPIDs(output string, pids []uint16) error
	RemovePIDs(output string, pids []uint16) error
	PIDCount(output string) (int, error)
	PIDs(output string) ([]uint16, error)
	PacketCount(output string) (uint32, error)
	SetDestination(output, mrl string) error
	List() ([]OutputInfo, error)
}

// OutputInfo is one row of an output listing (SOLO response).
type OutputInfo struct {
	Name    string
	MRL     string
	Service string
}

// ServiceStore is the external collaborator for the service/multiplex data
// store and the tuner front-end's PID information.
type ServiceStore interface {
	Select(service string) error
	Current() (string, error)
	PIDs(service string) ([]uint16, error)
	ListAll() ([]string, error)
	ListMultiplex() ([]string, error)
	FindName(service string) (bool, error)
}

// MultiplexStore is the external collaborator for section-filter
// management ("addsf"/"rmsf"/"setsf" in the companion CLI).
type MultiplexStore interface {
	AddFilter(name, mrl string) error
	RemoveFilter(name string) error
	SetFilter(name, service string) error
	SetDestination(name, mrl string) error
	ListFilters() ([]FilterInfo, error)
}

// FilterInfo is one row of a section-filter listing (SSFL response).
type FilterInfo struct {
	Name    string
	MRL     string
	Service string
}

// CommandInterpreter executes a QUOT passthrough textual command, writing
// its output to sink. It returns an error if the command is unrecognised.
type CommandInterpreter interface {
	Execute(command string, sink PrintSink) error
}

// PrintSink is the quote channel's output destination: the teacher's
// design note calls for a sink interface in place of a redirected global
// print function (spec §9 "Quote channel print sink").
type PrintSink interface {
	Printf(format string, args ...interface{})
}

// FrontEndStatus supplies tuner front-end statistics for STSS/SFES.
type FrontEndStatus interface {
	SignalStats() (ber, snr, strength, uncorrected, corrected uint32)
	Status() (locked bool, frequency uint32, symbolRate, bandwidth uint16)
}
