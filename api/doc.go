// Package api translates HTTP requests into world operations and
// serves the static web root.
//
// Endpoints:
//
// Maps:
//   - GET/HEAD /api/v1/maps          - list maps as [{id, name}]
//   - GET/HEAD /api/v1/maps/{id}     - full map detail (roads, buildings, offices)
//
// Game:
//   - POST     /api/v1/game/join           - {userName, mapId} -> {authToken, playerId}
//   - GET/HEAD /api/v1/game/players        - players on the caller's map (bearer auth)
//   - GET/HEAD /api/v1/game/state          - dog positions on the caller's map (bearer auth)
//   - POST     /api/v1/game/player/action  - {move: "L"|"R"|"U"|"D"|""} (bearer auth)
//   - POST     /api/v1/game/tick           - {timeDelta} (manual-tick mode only)
//
// Everything else under /api/ answers 400 badRequest; everything
// outside /api/ is served from the static web root. Methods other
// than GET, HEAD and POST are rejected up front with 405.
//
// Authenticated endpoints expect "Authorization: Bearer <token>" with
// the 32-hex-character token issued by join. Error bodies are always
// {"code", "message"} JSON; every API response carries
// Content-Type: application/json and Cache-Control: no-cache.
//
// Handlers never hold the game controller's queue slot across I/O:
// they decode the request first, run one closure against the game to
// mutate or snapshot state, and write the response after the closure
// has returned.
package api
