package simulation

import (
	"github.com/rs/xid"

	"github.com/sarchlab/csim/datarecording"
	"github.com/sarchlab/csim/monitoring"
)

// Builder can be used to build a simulation.
type Builder struct {
	recordingOn    bool
	outputFileName string
	dataRecorder   datarecording.DataRecorder
	monitorOn      bool
	monitorPort    int
}

// MakeBuilder creates a new builder. Recording and monitoring are off by
// default.
func MakeBuilder() Builder {
	return Builder{}
}

// WithRecording enables recording replay results into a SQLite database.
func (b Builder) WithRecording() Builder {
	b.recordingOn = true
	return b
}

// WithOutputFileName sets the output file name for the data recorder,
// implying recording.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.recordingOn = true
	b.outputFileName = filename
	return b
}

// WithDataRecorder sets an externally created data recorder, implying
// recording.
func (b Builder) WithDataRecorder(r datarecording.DataRecorder) Builder {
	b.recordingOn = true
	b.dataRecorder = r
	return b
}

// WithMonitoring enables the monitoring server.
func (b Builder) WithMonitoring() Builder {
	b.monitorOn = true
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.recordingOn && b.outputFileName != "" {
		panic("output file name cannot be set when recording is disabled")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{}
	s.id = xid.New().String()

	if b.recordingOn {
		s.dataRecorder = b.dataRecorder
		if s.dataRecorder == nil {
			outputPath := b.outputFileName
			if outputPath == "" {
				outputPath = "csim_run_" + s.id
			}
			s.dataRecorder = datarecording.New(outputPath)
		}

		s.dataRecorder.CreateTable(runSummaryTable, runSummaryEntry{})
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.StartServer()
	}

	return s
}
