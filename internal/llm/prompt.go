package llm

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/cognicore/koe/pkg/koe"
	"github.com/cognicore/koe/pkg/koe/ingest"
)

// DefaultSampleSize bounds how many responses are sent to the model.
const DefaultSampleSize = 100

// FormatRows renders one line per document with text. With attributes the
// line reads "[v1 | v2] || text" and missing values print as N/A.
func FormatRows(docs []ingest.Document, attributes []string) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		text := strings.Join(strings.Fields(d.Text), " ")
		if !d.HasText || text == "" {
			continue
		}
		if len(attributes) == 0 {
			out = append(out, text)
			continue
		}
		vals := make([]string, len(attributes))
		for i, a := range attributes {
			v, ok := d.Attr(a)
			if !ok {
				v = "N/A"
			}
			vals[i] = v
		}
		out = append(out, fmt.Sprintf("[%s] || %s", strings.Join(vals, " | "), text))
	}
	return out
}

// Sample picks up to n documents with text, deterministically for a seed,
// and returns them in input order. n <= 0 means DefaultSampleSize.
func Sample(docs []ingest.Document, n int, seed uint64) []ingest.Document {
	if n <= 0 {
		n = DefaultSampleSize
	}
	var idx []int
	for i, d := range docs {
		if d.HasText && strings.TrimSpace(d.Text) != "" {
			idx = append(idx, i)
		}
	}
	if len(idx) > n {
		r := rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d))
		r.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		idx = idx[:n]
		sort.Ints(idx)
	}
	out := make([]ingest.Document, len(idx))
	for i, j := range idx {
		out[i] = docs[j]
	}
	return out
}

// SummaryPrompt is the system prompt for the markdown report.
func SummaryPrompt(hasAttributes bool) string {
	var b strings.Builder
	b.WriteString("あなたは、テキストマイニングの専門家です。与えられたテキスト群を分析し、結果を詳細かつ分かりやすくマークダウン形式で出力してください。\n")
	if hasAttributes {
		b.WriteString("データは「[属性] || テキスト」の形式です。属性ごとの傾向や違いにも着目して分析してください。\n")
	}
	b.WriteString("## 1. 分析サマリー\n(全体の傾向を簡潔に要約)\n")
	b.WriteString("## 2. 主要なテーマ\n(頻出するトピックや意見のカテゴリを3〜5個提示)\n")
	b.WriteString("## 3. ポジティブな意見\n(具体的な良い点を引用しつつリストアップ)\n")
	b.WriteString("## 4. ネガティブな意見・課題\n(具体的な不満や改善点を引用しつつリストアップ)\n")
	if hasAttributes {
		b.WriteString("## 5. 属性別の傾向\n(属性ごとの特徴的な意見を比較)\n")
	}
	b.WriteString("## 6. 総評とネクストアクション\n(分析から言えること、次に行うべきアクションを提案)\n")
	return b.String()
}

// ClusterPrompt is the system prompt for structured clustering.
func ClusterPrompt(hasAttributes bool) string {
	p := "あなたは、テキストマイニングの専門家です。与えられた回答を意見のまとまり(クラスタ)に分類し、" +
		"各クラスタの名前、要約、感情(positive / neutral / negative)、全体に占める割合(0〜1)、代表的な回答の引用を JSON で返してください。" +
		"overall には全体の傾向を一文で記述してください。"
	if hasAttributes {
		p += "データは「[属性] || テキスト」の形式です。"
	}
	return p
}

func userPrompt(lines []string, grounding string) string {
	var b strings.Builder
	if grounding != "" {
		b.WriteString(grounding)
		b.WriteString("\n")
	}
	b.WriteString("回答:\n")
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\n")
	}
	return b.String()
}

// GroundingBlock renders the top words and characteristic words of a result
// so the model can anchor its summary in the statistics.
func GroundingBlock(res *koe.Result, topWords int) string {
	if res == nil {
		return ""
	}
	if topWords <= 0 {
		topWords = 20
	}
	var b strings.Builder
	b.WriteString("参考統計:\n")
	b.WriteString("頻出語: ")
	for i, r := range res.Ranking {
		if i >= topWords {
			break
		}
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s(%d)", r.Word, r.Frequency)
	}
	b.WriteString("\n")

	attrs := make([]string, 0, len(res.Characteristic))
	for a := range res.Characteristic {
		attrs = append(attrs, a)
	}
	sort.Strings(attrs)
	for _, a := range attrs {
		for _, c := range res.Characteristic[a].Categories {
			if len(c.Words) == 0 {
				continue
			}
			words := make([]string, 0, len(c.Words))
			for _, w := range c.Words {
				words = append(words, w.Word)
			}
			fmt.Fprintf(&b, "%s=%s の特徴語: %s\n", a, c.Category, strings.Join(words, ", "))
		}
	}
	return b.String()
}
