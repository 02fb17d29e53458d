// Copyright (c) 2025 The Credo developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import "github.com/credo-network/credo/metrics"

var (
	metricOpCounter      = metrics.LazyLoadCounterVec("ledger_op_count", []string{"op", "outcome"})
	metricOpDuration     = metrics.LazyLoadHistogramVec("ledger_op_duration_us", []string{"op"}, metrics.BucketOpDuration)
	metricEventCounter   = metrics.LazyLoadCounterVec("journal_event_count", []string{"kind"})
	metricJournalErrors  = metrics.LazyLoadCounter("journal_error_count")
	metricTotalPrincipal = metrics.LazyLoadGauge("ledger_total_principal")
	metricStakeCount     = metrics.LazyLoadGauge("ledger_stake_count")
)
