package domain

// Intent is the qualification taxonomy for an inbound customer message.
type Intent string

const (
	IntentOEMQuery          Intent = "OEM_QUERY"
	IntentVINHardPick       Intent = "VIN_HARD_PICK"
	IntentOrderStatus       Intent = "ORDER_STATUS"
	IntentServiceNotice     Intent = "SERVICE_NOTICE"
	IntentSmallTalk         Intent = "SMALL_TALK"
	IntentClarifyNumberType Intent = "CLARIFY_NUMBER_TYPE"
	IntentLost              Intent = "LOST"
	IntentOutOfScope        Intent = "OUT_OF_SCOPE"
)

// AmbiguityNumberType marks a bare number that could be either an order
// number or an OEM part number.
const AmbiguityNumberType = "NUMBER_TYPE_AMBIGUOUS"

// Actions the Node bot core knows how to execute.
const (
	ActionReply            = "reply"
	ActionABCPLookup       = "abcp_lookup"
	ActionHandoverOperator = "handover_operator"
)
