package mercadolibre

import "fmt"

// extractScript returns the in-page extraction routine. The site has cycled
// through several card layouts ("poly" components being the current one), so
// both the container and every field walk an ordered selector fallback list.
func extractScript(limit int) string {
	return fmt.Sprintf(`
		(function() {
			var limit = %d;
			var results = [];

			var containerSelectors = [
				'div.ui-search-result__wrapper',
				'li.ui-search-layout__item',
				'section.ui-search-results',
				'div.andes-card'
			];

			var items = [];
			for (var si = 0; si < containerSelectors.length; si++) {
				items = document.querySelectorAll(containerSelectors[si]);
				if (items.length > 0) break;
			}

			function text(el, selector) {
				var node = el.querySelector(selector);
				return node ? node.innerText.trim() : '';
			}

			function attr(el, selector, name) {
				var node = el.querySelector(selector);
				return (node && node.getAttribute(name)) || '';
			}

			function attrText(el, index) {
				var nodes = el.querySelectorAll('.poly-attributes_list li, .ui-search-card-attributes__attribute');
				return nodes.length > index ? nodes[index].innerText.trim() : '';
			}

			function photo(el) {
				var selectors = ['img.poly-component__picture', 'img.ui-search-result-image__element'];
				for (var i = 0; i < selectors.length; i++) {
					var img = el.querySelector(selectors[i]);
					if (img) return img.getAttribute('data-src') || img.getAttribute('src') || '';
				}
				return '';
			}

			for (var i = 0; i < items.length && results.length < limit; i++) {
				var item = items[i];
				results.push({
					title:    text(item, 'a.poly-component__title, a.ui-search-result__content'),
					link:     attr(item, 'a.poly-component__title, a.ui-search-result__content', 'href'),
					price:    text(item, '.andes-money-amount__fraction, .price-tag-fraction'),
					year:     attrText(item, 0),
					km:       attrText(item, 1),
					location: text(item, '.poly-component__location, .ui-search-item__location'),
					photo:    photo(item)
				});
			}

			return results;
		})()
	`, limit)
}

// detailScript extracts publish age, condition and description from a listing
// detail page.
const detailScript = `
	(function() {
		var result = { age: '', condition: '', description: '' };

		var ageEl = document.querySelector('span.ui-pdp-subtitle');
		if (ageEl) result.age = ageEl.innerText.trim();

		var condEl = document.querySelector('.ui-pdp-subtitle + span');
		if (condEl) result.condition = condEl.innerText.trim();

		var descEl = document.querySelector('.ui-pdp-description__content');
		if (descEl) result.description = descEl.innerText.trim();

		return result;
	})()
`
