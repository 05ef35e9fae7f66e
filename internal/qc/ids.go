package qc

import (
	"fmt"

	"bsrqc/internal/config"
	"bsrqc/internal/model"
	"bsrqc/internal/parser"
)

// firstSeen 记录名称第一次出现时对应的 ID
type firstSeen map[string]string

// observe 返回之前记录的值；第一次出现时记录并返回 ok=false
func (m firstSeen) observe(key, value string) (string, bool) {
	if prev, ok := m[key]; ok {
		return prev, true
	}
	m[key] = value
	return "", false
}

// ChannelIDs 频道名与频道 ID、市场名与市场 ID 必须一一对应（以首次出现为准）
func ChannelIDs(t *model.Table, bsr config.Aliases) *model.Table {
	cols := parser.NewFieldMapper(t, bsr)
	refs, missing := cols.Lookup("tv_channel", "channel_id")
	if len(missing) > 0 {
		return whole(t, ChannelIDConcern, model.Fail, missingColumnsRemark("Check skipped: ID columns not found", missing))
	}
	marketRef, marketIDRef := cols.Get("market"), cols.Get("market_id")

	channelToID := firstSeen{}
	idToChannel := firstSeen{}
	marketToID := firstSeen{}

	out := newOutcome(t.Len(), model.Pass, "OK")
	for i := 0; i < t.Len(); i++ {
		var remarks []string
		channel := text(t, i, refs["tv_channel"])
		channelID := text(t, i, refs["channel_id"])

		switch {
		case channel != "" && channelID == "":
			remarks = append(remarks, fmt.Sprintf("Channel ID missing for '%s'", raw(t, i, refs["tv_channel"])))
		case channel != "":
			if prev, seen := channelToID.observe(channel, channelID); seen && prev != channelID {
				remarks = append(remarks, fmt.Sprintf("Channel '%s' has multiple IDs (%s vs %s)", raw(t, i, refs["tv_channel"]), prev, channelID))
			}
			if prev, seen := idToChannel.observe(channelID, channel); seen && prev != channel {
				remarks = append(remarks, fmt.Sprintf("Channel ID '%s' assigned to multiple channels", raw(t, i, refs["channel_id"])))
			}
		}

		if marketRef.Found() && marketIDRef.Found() {
			market, marketID := text(t, i, marketRef), text(t, i, marketIDRef)
			switch {
			case market != "" && marketID == "":
				remarks = append(remarks, fmt.Sprintf("Market ID missing for '%s'", raw(t, i, marketRef)))
			case market != "":
				if prev, seen := marketToID.observe(market, marketID); seen && prev != marketID {
					remarks = append(remarks, fmt.Sprintf("Market '%s' has multiple IDs (%s vs %s)", raw(t, i, marketRef), prev, marketID))
				}
			}
		}

		if len(remarks) > 0 {
			out.fail(i, remarks)
		}
	}
	return out.apply(t, ChannelIDConcern)
}

// ClientSource 频道 ID 与市场 ID 一一对应，且付费/免费字段须包含 Client/LSTV/OTT 关键词
func ClientSource(t *model.Table, bsr config.Aliases, rules config.ClientRules) *model.Table {
	cols := parser.NewFieldMapper(t, bsr)
	refs, missing := cols.Lookup("channel_id", "market_id", "pay_tv")
	if len(missing) > 0 {
		return whole(t, ClientSourceConcern, model.Fail, missingColumnsRemark("Check skipped: columns not found", missing))
	}
	keywords := lowerAll(rules.Keywords)

	channelToMarket := firstSeen{}
	marketToChannel := firstSeen{}

	out := newOutcome(t.Len(), model.Pass, "OK")
	for i := 0; i < t.Len(); i++ {
		var remarks []string
		channelID := text(t, i, refs["channel_id"])
		marketID := text(t, i, refs["market_id"])

		switch {
		case channelID == "":
			remarks = append(remarks, "Channel ID missing")
		case marketID != "":
			if prev, seen := channelToMarket.observe(channelID, marketID); seen && prev != marketID {
				remarks = append(remarks, fmt.Sprintf("Channel ID %s linked to multiple Market IDs", raw(t, i, refs["channel_id"])))
			}
			if prev, seen := marketToChannel.observe(marketID, channelID); seen && prev != channelID {
				remarks = append(remarks, fmt.Sprintf("Market ID %s linked to multiple Channel IDs", raw(t, i, refs["market_id"])))
			}
		}

		if pay := text(t, i, refs["pay_tv"]); !parser.ContainsAny(pay, keywords) {
			remarks = append(remarks, fmt.Sprintf("Missing Client/LSTV/OTT source: %s", raw(t, i, refs["pay_tv"])))
		}

		if len(remarks) > 0 {
			out.fail(i, remarks)
		}
	}
	return out.apply(t, ClientSourceConcern)
}
