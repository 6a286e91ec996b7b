package metrics

import (
	"github.com/streamingfast/dmetrics"
)

var Metricset = dmetrics.NewSet()

var Submitted = Metricset.NewCounter("haste_triage_submitted_counter", "Counter for documents submitted to the triage queue")
var SubmitRejected = Metricset.NewCounter("haste_triage_submit_rejected_counter", "Counter for submissions rejected because the queue was full")

var PreprocessSelected = Metricset.NewCounter("haste_triage_preprocess_selected_counter", "Counter for slots handed out for preprocessing")
var ExploreSelected = Metricset.NewCounter("haste_triage_explore_selected_counter", "Counter for preprocess selections made by the block search phase")
var SendSelected = Metricset.NewCounter("haste_triage_send_selected_counter", "Counter for slots handed out for sending")
var SendShed = Metricset.NewCounter("haste_triage_send_shed_counter", "Counter for slots sent without ever being preprocessed")

var Preprocessed = Metricset.NewCounter("haste_triage_preprocessed_counter", "Counter for preprocessing completions reported")
var Popped = Metricset.NewCounter("haste_triage_popped_counter", "Counter for send completions reported")
var StateViolations = Metricset.NewCounter("haste_triage_state_violations_counter", "Counter for notifications rejected because the slot was in the wrong state")

var ModelFailures = Metricset.NewCounter("haste_model_failures_counter", "Counter for interestingness model failures recovered with a default score")
var EstimateUpdates = Metricset.NewCounter("haste_triage_estimate_updates_counter", "Counter for estimated scores revised by the estimator")

var SlotsNotPreProcessed = Metricset.NewGauge("haste_triage_slots_not_preprocessed", "Slots waiting for preprocessing")
var SlotsPreProcessing = Metricset.NewGauge("haste_triage_slots_preprocessing", "Slots being preprocessed")
var SlotsPreProcessed = Metricset.NewGauge("haste_triage_slots_preprocessed", "Slots preprocessed and waiting to be sent")
var SlotsPopping = Metricset.NewGauge("haste_triage_slots_popping", "Slots being sent")
var SlotsPopped = Metricset.NewGauge("haste_triage_slots_popped", "Slots sent")
var SlotsFree = Metricset.NewGauge("haste_triage_slots_free", "Slots never handed out")

var BlobsStored = Metricset.NewCounter("haste_storage_blobs_stored_counter", "Counter for blobs written to a storage target")
var BlobsDropped = Metricset.NewCounter("haste_storage_blobs_dropped_counter", "Counter for blobs matching no storage policy interval")
