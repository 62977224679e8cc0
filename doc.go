// Package bridge keeps two heterogeneous service registries eventually
// consistent during a live migration: a legacy monolith store and a CMS
// store split into a lifecycle container and a publication container. A
// review workflow gates whether a lifecycle change may become public.
//
// The bridge is change-driven: each entry point receives one changed record
// and decides which follow-up actions, if any, to emit. Anti-loop markers
// (the legacy cmsTag and the CMS "from Legacy" transition) are the sole
// mechanism preventing oscillation between the two sync directions, so
// every decision is loop-free and idempotent by construction.
//
// Typical embedding:
//
//	svc, _ := bridge.New(bridge.DefaultConfig(),
//		bridge.WithSubscriptionRegistry(registry))
//	set, err := svc.OnLegacyChange(ctx, changedRecord)
//
// The returned action set has already been published on the action queue;
// the external emitter drains it via svc.Actions().
package bridge
