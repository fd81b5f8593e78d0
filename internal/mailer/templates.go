package mailer

import (
	"fmt"
	"html"
)

// Email templates for the registration lifecycle. Content is Czech; the event
// is a one-day children's market, so dates and contacts are fixed per edition.

const (
	SubjectRegistrationConfirmed = "Potvrzení registrace na Dětské trhy 2026"
	SubjectThemeApproved         = "Registrace na Dětské trhy je platná – nahrajte video"
	SubjectVideoApproved         = "Jupííí, vítáme vás na Dětských trzích! 🎉"
)

const signature = `
  <hr style="margin: 20px 0; border: none; border-top: 1px solid #e5e7eb;">
  <p style="color: #6b7280; font-size: 14px;">
    S pozdravem,<br>
    <strong>Calm2be z.s.</strong><br>
    📞 <a href="tel:+420602282276">602 282 276</a> | ✉️ <a href="mailto:veronika@calm2be.cz">veronika@calm2be.cz</a>
  </p>
</div>`

func header() string {
	return `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #C8102E;">🎪 Dětské trhy – Srdcem pro lepší svět</h2>`
}

func uploadBox(uploadURL string) string {
	u := html.EscapeString(uploadURL)
	return fmt.Sprintf(`
  <div style="background: #fef3c7; padding: 15px; border-radius: 8px; margin: 20px 0;">
    <strong>📹 Nahrát video:</strong><br>
    <a href="%s" style="color: #C8102E; word-break: break-all;">%s</a>
  </div>`, u, u)
}

// RegistrationConfirmed is sent immediately after the form is submitted.
// uploadURL is empty when a video was already attached at registration time.
func RegistrationConfirmed(childName, stallName, uploadURL string) Message {
	body := header() + fmt.Sprintf(`
  <p>Dobrý den,</p>
  <p>Děkujeme za registraci dítěte <strong>%s</strong> se stánkem <strong>"%s"</strong> na Dětské trhy <strong>24. května 2026</strong>.</p>
  <div style="background: #d1fae5; padding: 15px; border-radius: 8px; margin: 20px 0;">
    <strong style="color: #065f46;">✓ Vaše registrace byla úspěšně přijata</strong>
  </div>`, html.EscapeString(childName), html.EscapeString(stallName))

	if uploadURL == "" {
		body += `
  <p>Video prezentace byla nahrána a bude posouzena. O výsledku vás budeme informovat emailem.</p>`
	} else {
		body += `
  <p><strong>Pro dokončení registrace prosím nahrajte krátké video (20-40 sekund)</strong> představující váš projekt. Termín pro nahrání: <strong>28. února 2026</strong>.</p>` +
			uploadBox(uploadURL) + `
  <p style="font-size: 14px; color: #6b7280;">Video můžete nahrát kdykoliv do uvedeného termínu. Odkaz zůstává platný.</p>`
	}

	body += `
  <h3 style="color: #4b5563;">Co bude následovat?</h3>
  <ul>
    <li>Pořadatel zkontroluje vaši registraci a téma stánku</li>
    <li>Po schválení obdržíte další email s podrobnostmi</li>
    <li>Máte-li dotazy, neváhejte nás kontaktovat</li>
  </ul>` + signature

	return Message{Subject: SubjectRegistrationConfirmed, HTML: body}
}

// ThemeApproved is sent when the stall theme passes review; it carries the
// upload link so the guardian can attach the presentation video.
func ThemeApproved(childName, uploadURL string) Message {
	body := header() + fmt.Sprintf(`
  <p>Dobrý den,</p>
  <p>Vaše registrace dítěte <strong>%s</strong> na Dětské trhy <strong>24. května 2026</strong> je platná.</p>
  <p><strong>Aby byla registrace dokončena, nahrajte prosím videonahrávku záměru stánku do 28. února 2026.</strong></p>`,
		html.EscapeString(childName))

	if uploadURL != "" {
		body += uploadBox(uploadURL)
	}

	body += `
  <ul>
    <li>Nahrávka bude použita pro hodnotící porotu i pro případné návrhy na zlepšení</li>
    <li>Doporučujeme délku cca 20 sekund, max. 40 sekund</li>
    <li>Výsledek hodnocení Vám bude sdělen do 5 pracovních dní</li>
    <li>Nahrávka může být použita také k veřejné prezentaci pořadatele</li>
  </ul>` + signature

	return Message{Subject: SubjectThemeApproved, HTML: body}
}

// VideoApproved is sent when the registration is fully approved.
func VideoApproved(childName string) Message {
	body := header() + fmt.Sprintf(`
  <p><strong style="font-size: 18px; color: #16a34a;">Jupííí, vítáme vás na trhu!</strong></p>
  <p>Gratulujeme! Registrace dítěte <strong>%s</strong> je kompletní a těšíme se na společný den plný obchodování.</p>
  <h3 style="color: #4b5563;">Co teď?</h3>
  <ul>
    <li>✨ Můžete zahájit výrobu výrobků či přípravu vaší služby</li>
    <li>📣 Nezapomeňte na marketing – doporučujeme si vyrobit pozvánku na akci</li>
    <li>👨‍👩‍👧‍👦 Zvěte své okolí: babičky, tetičky, kámoše, učitelky apod.</li>
  </ul>
  <div style="background: #f3f4f6; padding: 15px; border-radius: 8px; margin: 20px 0;">
    <strong>📅 Workshop pro nové trhovce</strong><br>
    23. dubna od 15:00 hod<br>
    <em>Kdo neví jak na to, přijďte!</em>
  </div>
  <h3 style="color: #4b5563;">V den konání akce (24. května 2026)</h3>
  <ul>
    <li>Doporučujeme dorazit cca v 9:00 hod</li>
    <li>Ze strany pořadatele budete mít k dispozici stůl, jednu židli a jednotné označení stánku</li>
  </ul>
  <div style="background: #fef3c7; padding: 15px; border-radius: 8px; margin: 20px 0;">
    <strong>💰 Poplatek za stánek</strong><br>
    500 Kč – vybírá se na místě, až si stánek vydělá
  </div>`, html.EscapeString(childName)) + signature

	return Message{Subject: SubjectVideoApproved, HTML: body}
}
