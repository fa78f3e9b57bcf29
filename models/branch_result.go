package models

import (
	"fmt"
	"strings"
)

// BranchResult records the outcome of building one branch for one
// discovered stream.
//
// Successful results always name the encoder port the branch feeds and carry
// no error. Failed results always carry an error and name no encoder port,
// since a failed branch gives its port back.
//
// Use NewBranchSuccess or NewBranchFailure to create validated instances.
type BranchResult struct {
	Stream      StreamDescriptor `json:"stream"`
	EncoderPort string           `json:"encoder_port"`
	Nodes       []string         `json:"nodes"`
	Success     bool             `json:"success"`
	Error       error            `json:"error"`
}

// NewBranchSuccess creates a successful BranchResult with validation.
//
// Returns an error if encoderPort is empty or whitespace-only.
func NewBranchSuccess(stream StreamDescriptor, encoderPort string, nodes []string) (*BranchResult, error) {
	br := &BranchResult{
		Stream:      stream,
		EncoderPort: encoderPort,
		Nodes:       nodes,
		Success:     true,
	}
	if err := br.Validate(); err != nil {
		return nil, fmt.Errorf("invalid branch result: %w", err)
	}
	return br, nil
}

// NewBranchFailure creates a failed BranchResult. branchErr must not be nil.
func NewBranchFailure(stream StreamDescriptor, nodes []string, branchErr error) (*BranchResult, error) {
	if branchErr == nil {
		return nil, fmt.Errorf("invalid branch result: error cannot be nil for failed result")
	}
	return &BranchResult{
		Stream:  stream,
		Nodes:   nodes,
		Success: false,
		Error:   branchErr,
	}, nil
}

// Validate checks that the BranchResult has consistent state.
func (br *BranchResult) Validate() error {
	if br.Success && br.Error != nil {
		return fmt.Errorf("inconsistent state: Success is true but Error is not nil")
	}

	if !br.Success && br.Error == nil {
		return fmt.Errorf("failed result must have an error")
	}

	if br.Success && strings.TrimSpace(br.EncoderPort) == "" {
		return fmt.Errorf("encoder_port cannot be empty for successful result")
	}

	if !br.Success && strings.TrimSpace(br.EncoderPort) != "" {
		return fmt.Errorf("failed result should not have encoder_port")
	}

	return nil
}
