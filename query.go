package tflitedetect

import (
	"fmt"
	"io"
)

// Query the loaded model to get input and output tensor information in
// text/human readable format
func (d *Detector) Query(w io.Writer) (err error) {

	if !d.initialized {
		return ErrNotInitialized
	}

	session, err := d.engine.NewSession(d.model, d.numThreads)

	if err != nil {
		return fmt.Errorf("error creating session: %w", err)
	}

	defer func() {
		if cerr := session.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("error closing session: %w", cerr)
		}
	}()

	if err := session.AllocateTensors(); err != nil {
		return fmt.Errorf("error querying tensors: %w", err)
	}

	inputAttrs := session.InputTensors()
	outputAttrs := session.OutputTensors()

	fmt.Fprintf(w, "Model Input Number: %d, Output Number: %d\n",
		len(inputAttrs), len(outputAttrs))
	fmt.Fprintf(w, "Labels: %d, Label Offset: %d, Min Score: %.2f, Threads: %d\n",
		len(d.labels), d.labelOffset, d.minScore, d.numThreads)

	fmt.Fprintf(w, "Input tensors:\n")

	for _, attr := range inputAttrs {
		fmt.Fprintf(w, "  %s\n", attr.String())
	}

	fmt.Fprintf(w, "Output tensors:\n")

	for _, attr := range outputAttrs {
		fmt.Fprintf(w, "  %s\n", attr.String())
	}

	return nil
}
