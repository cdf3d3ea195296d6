//go:build windows

package main

import "syscall"

func init() {
	// Chinese chat text and the key prompt both need a UTF-8 console
	kernel32 := syscall.NewLazyDLL("kernel32.dll")
	setConsoleOutputCP := kernel32.NewProc("SetConsoleOutputCP")
	setConsoleCP := kernel32.NewProc("SetConsoleCP")
	setConsoleOutputCP.Call(uintptr(65001)) // 65001 is UTF-8
	setConsoleCP.Call(uintptr(65001))
}
