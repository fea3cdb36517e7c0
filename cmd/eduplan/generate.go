package main

import (
	"encoding/json"
	"fmt"
	"os"

	// Packages
	conversation "github.com/mutablelogic/go-eduplan/pkg/conversation"
	generator "github.com/mutablelogic/go-eduplan/pkg/generator"
	httpclient "github.com/mutablelogic/go-eduplan/pkg/httpclient"
	schema "github.com/mutablelogic/go-eduplan/pkg/schema"
	yaml "gopkg.in/yaml.v3"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type GenerateFlags struct {
	Thread string            `help:"Continue a specific conversation thread"`
	New    bool              `help:"Start a new conversation instead of continuing the saved one"`
	File   []string          `type:"existingfile" help:"Attach a file to the request"`
	Preset string            `type:"existingfile" help:"YAML file with the message and form fields"`
	Field  map[string]string `help:"Endpoint-specific form field (key=value)"`
}

type OutlineCmd struct {
	GenerateFlags
	Message string `arg:"" optional:"" help:"What to generate an outline for"`
}

type LessonCmd struct {
	GenerateFlags
	Message string `arg:"" optional:"" help:"What to generate a lesson plan for"`
}

type SlidesCmd struct {
	GenerateFlags
	Message string `arg:"" optional:"" help:"What to generate slides for"`
}

type AssessmentCmd struct {
	GenerateFlags
	Message string `arg:"" optional:"" help:"What to generate an assessment for"`
}

// threadNav is the addressable location of the command line client: the
// per-endpoint thread binding persisted in the config file, with an
// explicit --thread flag taking precedence.
type threadNav struct {
	config   *Config
	endpoint string
	explicit string
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (cmd *OutlineCmd) Run(globals *Globals) error {
	return generate[schema.CourseOutline](globals, schema.EndpointOutline, cmd.GenerateFlags, cmd.Message)
}

func (cmd *LessonCmd) Run(globals *Globals) error {
	return generate[schema.LessonPlan](globals, schema.EndpointLesson, cmd.GenerateFlags, cmd.Message)
}

func (cmd *SlidesCmd) Run(globals *Globals) error {
	return generate[schema.SlideDeck](globals, schema.EndpointSlides, cmd.GenerateFlags, cmd.Message)
}

func (cmd *AssessmentCmd) Run(globals *Globals) error {
	return generate[schema.Assessment](globals, schema.EndpointAssessment, cmd.GenerateFlags, cmd.Message)
}

func (n *threadNav) ThreadID() string {
	if n.explicit != "" {
		return n.explicit
	}
	return n.config.ThreadFor(n.endpoint)
}

func (n *threadNav) SetThreadID(thread string) {
	n.explicit = ""
	n.config.SetThreadFor(n.endpoint, thread)
}

func (n *threadNav) NavigateBase() {
	n.explicit = ""
	n.config.SetThreadFor(n.endpoint, "")
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// generate runs one prompt against a generation endpoint and renders
// the completed result as markdown.
func generate[T interface{ Markdown() string }](globals *Globals, endpoint string, flags GenerateFlags, message string) error {
	req, err := makeRequest(flags, message)
	if err != nil {
		return err
	}

	// Reconcile with the conversation the endpoint is addressed at
	nav := &threadNav{config: globals.config, endpoint: endpoint, explicit: flags.Thread}
	if flags.New {
		nav.NavigateBase()
	}
	manager, err := conversation.NewManager(globals.client, nav,
		conversation.WithDecoder(func(content string) (any, error) {
			var result T
			if err := json.Unmarshal([]byte(content), &result); err != nil {
				return nil, err
			}
			return &result, nil
		}),
	)
	if err != nil {
		return err
	}
	if thread := nav.ThreadID(); thread != "" {
		if err := manager.Resume(globals.ctx); err != nil {
			globals.display.Printf("conversation %q could not be loaded, starting a new one\n", thread)
		}
	}

	// Form fields the conversation started with still apply unless
	// overridden on the command line
	if meta := manager.Meta(); meta != nil {
		for key, value := range meta.Fields {
			if _, ok := req.Fields[key]; !ok {
				if req.Fields == nil {
					req.Fields = make(map[string]string)
				}
				req.Fields[key] = value
			}
		}
	}

	gen, err := generator.New[T](globals.client, endpoint,
		generator.WithOnThread(manager.Adopt),
		generator.WithOnProgress(func(message string) {
			if text, key, _ := schema.DecodeProgress(message); text != "" {
				globals.display.Progress(text)
			} else {
				globals.display.Progress(key)
			}
		}),
	)
	if err != nil {
		return err
	}
	gen.SetThread(manager.ThreadID())

	// Attach files
	files, closer, err := openFiles(flags.File)
	if err != nil {
		return err
	}
	defer closer()

	// Send and render
	manager.Begin(req.Message)
	result, err := gen.Send(globals.ctx, req, files...)
	globals.display.ProgressDone()
	if err != nil {
		manager.Discard()
		return err
	}
	if result == nil {
		manager.Discard()
		globals.display.Println("generation ended without a result")
		return nil
	}
	manager.Complete(result)
	return globals.display.Markdown((*result).Markdown())
}

// makeRequest builds the generation request from a preset file and
// command line flags, with flags taking precedence.
func makeRequest(flags GenerateFlags, message string) (schema.GenerateRequest, error) {
	var req schema.GenerateRequest
	if flags.Preset != "" {
		data, err := os.ReadFile(flags.Preset)
		if err != nil {
			return req, err
		}
		if err := yaml.Unmarshal(data, &req); err != nil {
			return req, fmt.Errorf("%s: %w", flags.Preset, err)
		}
	}
	if message != "" {
		req.Message = message
	}
	for key, value := range flags.Field {
		if req.Fields == nil {
			req.Fields = make(map[string]string)
		}
		req.Fields[key] = value
	}
	if req.Message == "" {
		return req, fmt.Errorf("a message is required, either as an argument or in the preset")
	}
	// A thread from the flags wins over one from the preset
	if flags.Thread != "" {
		req.ThreadID = ""
	}
	return req, nil
}

// openFiles opens attachments and returns a closer for all of them.
func openFiles(paths []string) ([]httpclient.File, func(), error) {
	var files []httpclient.File
	var handles []*os.File
	closer := func() {
		for _, handle := range handles {
			_ = handle.Close()
		}
	}
	for _, path := range paths {
		handle, err := os.Open(path)
		if err != nil {
			closer()
			return nil, nil, err
		}
		handles = append(handles, handle)
		files = append(files, httpclient.File{Name: handle.Name(), Body: handle})
	}
	return files, closer, nil
}
