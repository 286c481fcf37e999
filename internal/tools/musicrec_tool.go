package tools

import (
	"context"
	"fmt"
	"strings"
)

// NewMusicRecommendTool suggests songs by running a tailored web search.
func NewMusicRecommendTool(searcher *WebSearcher) *Tool {
	return &Tool{
		Name:        "music_recommend",
		Description: "Recomenda músicas",
		Invoke: func(ctx context.Context, args string) (string, error) {
			searchQuery := fmt.Sprintf("melhores músicas de %s recomendações youtube", args)
			results := searcher.Search(ctx, searchQuery)

			if strings.Contains(results, "Nenhum resultado") {
				return "❌ Não consegui encontrar recomendações específicas para isso agora.", nil
			}

			report := fmt.Sprintf(
				"🎶 **Sugestões de Áudio para: %s**\n"+
					"Aqui está o que encontrei de relevante:\n\n"+
					"%s\n"+
					"💡 *Dica: Você pode me pedir para tocar uma dessas usando o comando +play!*",
				titleCase(args), results)
			return report, nil
		},
	}
}
