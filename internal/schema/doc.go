// Package schema compiles domain schemas written in CUE.
//
// A domain schema names a unit of delta state (Vertical.Field.Object) and
// lists its delta fields. Each field becomes an independent register of the
// declared width; the schema also fixes whether rollback is available and how
// deep the history goes.
//
// # Schema Format
//
//	domain: PriceTick: {
//		catalogue: {
//			vertical: "Finance"
//			field:    "Trading"
//			object:   "PriceTick"
//			version:  "1.0.0"
//		}
//		delta_fields: {
//			price_delta: {type: "delta_stream", width: 64}
//			trade_flags: {type: "bitmask_delta", width: 64, default_value: 0}
//		}
//		operations: {
//			accumulate: {}
//			rollback: {enabled: true, history_depth: 4096}
//		}
//	}
//
// Widths are limited to 8, 16, 32 and 64 bits. Field declaration order is
// preserved. The builtin catalogue (PriceTick, IMUFusion, H264Delta) is
// embedded and available through Builtin.
package schema
