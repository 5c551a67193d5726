// Package campaign implements retention campaign orchestration.
//
// The service layer selects target customers by churn risk tier, composes a
// message per target, drives batched SMS dispatch, and records per-target
// outcomes. It depends on the capability interfaces defined in this package
// (Composer, Transport, Recorder) and the store.Store data source; concrete
// implementations live in compose/, twilio/, store/outputs/, and
// repository/postgres/.
//
// The pipeline never fails a whole batch for one bad record: per-target
// failures are recorded and the batch continues.
package campaign
