package mocks

import "driveease/infras/otel"

type discardScope struct{}

func (discardScope) End()                         {}
func (discardScope) TraceError(error)             {}
func (discardScope) TraceIfError(error)           {}
func (discardScope) AddEvent(string)              {}
func (discardScope) SetAttribute(string, any)     {}
func (discardScope) SetAttributes(map[string]any) {}

func NewScope() otel.Scope {
	return discardScope{}
}
