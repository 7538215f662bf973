// Package tree_config reads a character description from YAML and turns it into a skeleton, its
// clips and a wired blend tree.
package tree_config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	errDuplicateName = errors.New("duplicate name")
	errUnknownJoint  = errors.New("unknown joint")
	errUnknownClip   = errors.New("unknown clip")
	errUnknownNode   = errors.New("unknown node")
	errTooManyInputs = errors.New("too many inputs for node type")
	errNotClipInput  = errors.New("node type only accepts clip inputs")
	errCycle         = errors.New("node graph contains a cycle")
	errInputRejected = errors.New("input rejected by node")
	errTreeFull      = errors.New("blend tree is full")
)

// maxInputs is the number of input slots each node type evaluates.
var maxInputs = map[string]int{
	"clip":              0,
	"linear_blend":      2,
	"linear_blend_sync": 2,
	"transition":        2,
	"ragdoll":           1,
}

var clipInputsOnly = map[string]bool{
	"linear_blend_sync": true,
	"transition":        true,
}

var validate = validator.New()

// Load reads and validates a document from a YAML file.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - *Document: the validated document
//   - error: an error if the file cannot be read, parsed or validated
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a document. Unknown fields are rejected.
//
// Parameters:
//   - data: the YAML source
//
// Returns:
//   - *Document: the validated document
//   - error: an error if the source cannot be parsed or validated
func Parse(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse graph YAML: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid graph: %w", err)
	}
	return &doc, nil
}

// Validate checks the struct constraints and the cross references of the document: names are
// unique, every reference resolves, node types get the inputs they can evaluate and the graph is
// acyclic.
//
// Returns:
//   - error: the first problem found, or nil
func (d *Document) Validate() error {
	if err := validate.Struct(d); err != nil {
		return err
	}

	joints := make(map[string]bool, len(d.Skeleton.Joints))
	for _, j := range d.Skeleton.Joints {
		if joints[j.Name] {
			return fmt.Errorf("joint %q: %w", j.Name, errDuplicateName)
		}
		if j.Parent != "" && !joints[j.Parent] {
			return fmt.Errorf("joint %q parent %q: %w", j.Name, j.Parent, errUnknownJoint)
		}
		joints[j.Name] = true
	}

	clips := make(map[string]bool, len(d.Clips))
	for _, c := range d.Clips {
		if clips[c.Name] {
			return fmt.Errorf("clip %q: %w", c.Name, errDuplicateName)
		}
		for _, ch := range c.Channels {
			if !joints[ch.Joint] {
				return fmt.Errorf("clip %q channel %q: %w", c.Name, ch.Joint, errUnknownJoint)
			}
		}
		clips[c.Name] = true
	}

	nodes := make(map[string]NodeSpec, len(d.Nodes))
	for _, n := range d.Nodes {
		if _, ok := nodes[n.Name]; ok {
			return fmt.Errorf("node %q: %w", n.Name, errDuplicateName)
		}
		if n.Clip != "" && !clips[n.Clip] {
			return fmt.Errorf("node %q clip %q: %w", n.Name, n.Clip, errUnknownClip)
		}
		if len(n.Inputs) > maxInputs[n.Type] {
			return fmt.Errorf("node %q (%s) has %d inputs: %w", n.Name, n.Type, len(n.Inputs), errTooManyInputs)
		}
		nodes[n.Name] = n
	}

	for _, n := range d.Nodes {
		for _, in := range n.Inputs {
			src, ok := nodes[in]
			if !ok {
				return fmt.Errorf("node %q input %q: %w", n.Name, in, errUnknownNode)
			}
			if clipInputsOnly[n.Type] && src.Type != "clip" {
				return fmt.Errorf("node %q input %q (%s): %w", n.Name, in, src.Type, errNotClipInput)
			}
		}
	}
	if _, ok := nodes[d.Root]; !ok {
		return fmt.Errorf("root %q: %w", d.Root, errUnknownNode)
	}

	return findCycle(d.Nodes)
}

// findCycle runs a depth-first search over the input edges and reports the first back edge.
func findCycle(specs []NodeSpec) error {
	const (
		unvisited = iota
		visiting
		done
	)

	inputs := make(map[string][]string, len(specs))
	for _, n := range specs {
		inputs[n.Name] = n.Inputs
	}
	state := make(map[string]int, len(specs))

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("through node %q: %w", name, errCycle)
		case done:
			return nil
		}
		state[name] = visiting
		for _, in := range inputs[name] {
			if err := visit(in); err != nil {
				return err
			}
		}
		state[name] = done
		return nil
	}

	for _, n := range specs {
		if err := visit(n.Name); err != nil {
			return err
		}
	}
	return nil
}
