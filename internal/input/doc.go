// Package input turns raw pointer and wheel events into viewport pans and
// zooms.
//
// Hosts translate their native events ([TeaTranslator] for bubbletea,
// [TcellTranslator] for tcell) into [Event] values and dispatch them on a
// [Bus]. A [Controller] attached to the bus runs the Idle/Dragging state
// machine and forwards movement to its [Target]. [Controller.Close] detaches
// every listener so nothing leaks across restarts.
package input
