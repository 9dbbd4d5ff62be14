//go:build !libyuv

package main

import "github.com/swdee/go-tflitedetect/yuv"

var converter yuv.Converter = yuv.OpenCV{}
