// Package viz renders simulation results in the terminal.
//
//   - [PlotSeries]: asciigraph line plot of one series with threshold lines
//   - [StepTable] and [Summary]: lipgloss-styled run reports
//   - [LiveRenderer]: a sim.Observer printing one status line per step
//   - [ReplayModel]: Bubble Tea step-through of a stored run
//
// # Replay Key Bindings
//
//	Space   - Play/Pause
//	←/→     - Step backward/forward
//	Home/End- Jump to first/last step
//	B       - Jump to the breach step
//	T       - Cycle color themes
//	Q       - Quit
package viz
