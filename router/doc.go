// Package router dispatches a classified intent to the domain agents and
// folds every agent outcome into a core.RouteResult.
//
// Parameters are pulled from the message by ordered extractors: the first
// matching pattern wins. Agent errors, panics and timeouts never escape Route;
// they become failed results whose message starts with
// "Error processing request:".
//
// Multi-domain intents fan out to one sub-route per domain word present in
// the message (meal, shop, travel/trip). Sub-routes run sequentially unless
// Options.ParallelFanOut is set; either way results keep meal, shopping,
// travel order.
package router
