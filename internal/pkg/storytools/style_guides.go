package storytools

import (
	"fmt"
)

// ImageStyleGuides 图片风格指南
// key 为风格名称，value 为追加到图片提示词后的风格描述
var ImageStyleGuides = map[string]string{
	"drawing": `General Aesthetic: A hand-drawn educational illustration in the style of a traditional textbook or field guide showing comparison scenes. The overall look should feel analog, not digital, with visible textures of traditional media.

Art Style & Medium:
- Medium: Watercolor wash coloring combined with distinct black ink line art.
- Line Work: Black outlines that are hand-sketched, slightly wobbly, and organic, not mechanically perfect. Varying line weights (thicker borders, thinner interior details).
- Color & Texture: Muted, earthy, and natural color palette (greens, ochres, browns, desaturated blues). Visible watercolor textures, brush strokes, and paper grain.
- Shading: Achieved through watercolor layering and light ink hatching.

Text & Labeling Style:
- Main Titles: Located at the very top of the panel(s). Hand-lettered, bold, all-caps, sans-serif font, underlined with a hand-drawn line.
- Internal Labels: Smaller, handwritten, casual sans-serif text within the scene.
- Connectors: Hand-drawn black ink curved arrows connecting the labels to specific objects or figures in the illustration.

Composition & Content:
- Layout: [Choose one: A single detailed environmental scene OR A multi-panel comparison separated by thick black dividing lines].
- Perspective: A wide, slightly elevated environmental view allowing for the depiction of landscapes, settlements, and small human figures interacting with their surroundings.

Please follow this style guide to generate the infographic.`,
}

// ApplyStyle 将风格指南追加到生成提示词（图片与视频共用同一份指南）
// 未知风格原样返回提示词
func ApplyStyle(prompt, style string) string {
	guide, ok := ImageStyleGuides[style]
	if !ok {
		return prompt
	}
	return fmt.Sprintf("%s\n\n%s", prompt, guide)
}
