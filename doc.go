/*
go-tflitedetect runs quantized SSD object detection models through the
TensorFlow Lite runtime and filters the detections by confidence score.

The Detector takes camera frames as packed 0xAARRGGBB pixels, marshals them
into the model's RGB uint8 input tensor, invokes the runtime and returns the
detections scoring at or above the minimum score.  The runtime itself is
reached through the Engine interface, the tflite sub package provides the
implementation backed by the TensorFlow Lite C library.

Camera frames from Android style YUV420SP (NV21) sources can be converted to
packed ARGB with the yuv sub package.

See example code and usage in the example subdirectory.
*/
package tflitedetect
