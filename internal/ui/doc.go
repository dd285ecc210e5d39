// Package ui provides the terminal user interface for roster.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program rendering a single users query. It never
// fetches on its own: key presses call the query's operations (Refetch,
// FetchMore, StartPolling, StopPolling) and every published snapshot arrives
// through a subscription as a stateMsg. The model therefore always renders
// the query's latest state, including transitions caused by poll ticks.
//
// # Package Structure
//
//   - app.go: Options, Model, Update loop, key handling and Run
//   - view.go: header, user list, footer and help overlay rendering
//   - keys.go: key bindings (bubbles/key) and help.KeyMap
//   - theme.go: Dracula and Slate palettes with status badge colors
//   - strings.go: truncation and padding helpers
//
// # Screen Layout
//
//	roster https://api.example        updated 14:32:15 [READY]
//	  ID   NAME                     EMAIL                        COMPANY
//	> #1   Leanne Graham            Sincere@april.biz            Romaguera-Crona
//	  #2   Ervin Howell             Shanna@melissa.tv            Deckow-Crist
//	3 users · more available  ⣾ loading more
//	r Refetch • m Fetch more • p Toggle polling • ? Toggle help • q Quit
//
// A failed fetch adds an error line above the list; the previously loaded
// users stay visible. The header shows "offline" once several fetches in a
// row have failed.
//
// # Preferences
//
// Cycling the theme (T) and pausing polling (p) are saved to the prefs file
// immediately, so the next session starts the same way.
//
// # Lifecycle
//
// Quitting closes the query, which stops polling and closes the
// subscription; Run also closes it when the program exits for any other
// reason.
package ui
