package main

import (
	"errors"
)

var (
	ErrBadModel      = errors.New("can't load model")
	ErrBadInput      = errors.New("can't open input")
	ErrStreamEnded   = errors.New("stream ended")
	ErrInterrupted   = errors.New("interrupted by user")
	ErrBrokerRefused = errors.New("mqtt broker refused connection")
)
